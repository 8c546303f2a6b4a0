package llm

import (
	"encoding/json"
	"errors"

	"github.com/kaptinlin/jsonrepair"
)

// unmarshalJSON decodes data into target and retries once on repaired input when
// the reply is syntactically broken.
func unmarshalJSON(data string, target any) error {
	err := json.Unmarshal([]byte(data), target)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}
	repaired, repairErr := jsonrepair.JSONRepair(data)
	if repairErr != nil {
		return errors.Join(err, repairErr)
	}
	return json.Unmarshal([]byte(repaired), target)
}
