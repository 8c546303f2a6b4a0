package segment_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/temirov/uistream/internal/segment"
)

func TestExtractCompleteUnit(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		buffer   string
		expected string
	}{
		{name: "self closing tag", buffer: "<br/>tail", expected: "<br/>"},
		{name: "nested balanced element", buffer: "<div><p>x</p></div>rest", expected: "<div><p>x</p></div>"},
		{name: "unbalanced open tag", buffer: "<div>incomplete", expected: ""},
		{
			name:     "component slot",
			buffer:   `<component-slot type="List" data-source="music::top_songs"/>more content`,
			expected: `<component-slot type="List" data-source="music::top_songs"/>`,
		},
		{name: "paired tag", buffer: "<div>content</div>more", expected: "<div>content</div>"},
		{name: "deeply nested", buffer: "<div><p><span>text</span></p></div>rest", expected: "<div><p><span>text</span></p></div>"},
		{name: "siblings", buffer: "<div><p>first</p><p>second</p></div>after", expected: "<div><p>first</p><p>second</p></div>"},
		{name: "attributes", buffer: `<div class="test" id="main">content</div>more`, expected: `<div class="test" id="main">content</div>`},
		{name: "empty buffer", buffer: "", expected: ""},
		{name: "image", buffer: `<img src="test.jpg"/>other content`, expected: `<img src="test.jpg"/>`},
		{name: "plain text", buffer: "just text", expected: ""},
		{name: "leading text stays with unit", buffer: "hello <br/>world", expected: "hello <br/>"},
		{name: "allow-listed tag without slash", buffer: "<br>text", expected: "<br>"},
		{name: "mismatched close ignored", buffer: "<div><span></div></span></div>!", expected: "<div><span></div></span></div>"},
		{name: "tag without closing bracket", buffer: "<div", expected: ""},
		{name: "closing tag without bracket", buffer: "<div></div", expected: ""},
		{name: "comment declaration", buffer: "<!-- note --><p>x</p>", expected: "<!-- note -->"},
		{name: "case insensitive names", buffer: "<DIV>x</div>y", expected: "<DIV>x</div>"},
		{name: "self closing inside element", buffer: "<div><br/><img src='a'></div>z", expected: "<div><br/><img src='a'></div>"},
		{name: "empty brackets are text", buffer: "<>x<br/>", expected: "<>x<br/>"},
		{name: "orphan closing tag", buffer: "</p><br/>", expected: "</p><br/>"},
		{name: "whitespace in tag", buffer: "<div\n  class='a'>x</div >", expected: "<div\n  class='a'>x</div >"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			actual := segment.ExtractCompleteUnit(testCase.buffer)
			if actual != testCase.expected {
				t.Fatalf("ExtractCompleteUnit(%q) = %q, want %q", testCase.buffer, actual, testCase.expected)
			}
		})
	}
}

func TestExtractorCustomAllowList(t *testing.T) {
	t.Parallel()

	buffer := `<data-value data-source="music::total_minutes">rest`
	if unit := segment.ExtractCompleteUnit(buffer); unit != "" {
		t.Fatalf("default allow-list should wait, got %q", unit)
	}
	extractor := segment.NewExtractor([]string{" Data-Value ", ""})
	unit := extractor.Extract(buffer)
	if unit != `<data-value data-source="music::total_minutes">` {
		t.Fatalf("unexpected unit %q", unit)
	}

	var zero segment.Extractor
	if unit := zero.Extract("<br>"); unit != "" {
		t.Fatalf("zero extractor should not know br, got %q", unit)
	}
	if unit := zero.Extract("<br/>"); unit != "<br/>" {
		t.Fatalf("zero extractor should honor explicit self close, got %q", unit)
	}
}

var fragments = []string{
	"<div>", "</div>", "<p>", "</p>", "<span class='x'>", "</span>", "<br/>", "<br>", "<img src='a'>",
	"<component-slot type=\"List\" data-source=\"music::top_songs\" />", "text", " ", "\n", "<", ">", "</", "<!-- c -->",
}

func randomBuffer(random *rand.Rand) string {
	var builder strings.Builder
	count := random.Intn(24)
	for index := 0; index < count; index++ {
		builder.WriteString(fragments[random.Intn(len(fragments))])
	}
	return builder.String()
}

func TestExtractBalanceAndProgress(t *testing.T) {
	t.Parallel()

	random := rand.New(rand.NewSource(7))
	for iteration := 0; iteration < 2000; iteration++ {
		remaining := randomBuffer(random)
		original := remaining
		for {
			unit := segment.ExtractCompleteUnit(remaining)
			if unit == "" {
				break
			}
			if !strings.HasPrefix(remaining, unit) {
				t.Fatalf("unit %q is not a prefix of %q", unit, remaining)
			}
			if len(unit) > len(remaining) {
				t.Fatalf("unit %q longer than remaining buffer %q", unit, remaining)
			}
			if again := segment.ExtractCompleteUnit(unit); again != unit {
				t.Fatalf("unit %q is not balanced on its own (got %q) in %q", unit, again, original)
			}
			remaining = remaining[len(unit):]
		}
	}
}

func TestSegmenterStreamsUnits(t *testing.T) {
	t.Parallel()

	segmenter := segment.NewSegmenter(segment.NewExtractor(segment.DefaultSelfClosingTags))
	deltas := []string{"<di", "v><p>a</p>", "</div>\n<br", "/>", "tail"}
	expected := [][]string{nil, nil, {"<div><p>a</p></div>"}, {"\n<br/>"}, nil}

	for index, delta := range deltas {
		units := segmenter.Write(delta)
		if strings.Join(units, "|") != strings.Join(expected[index], "|") {
			t.Fatalf("write %d: got %q, want %q", index, units, expected[index])
		}
	}
	if pending := segmenter.Pending(); pending != "tail" {
		t.Fatalf("unexpected pending text %q", pending)
	}
	if remainder := segmenter.Flush(); remainder != "tail" {
		t.Fatalf("unexpected flush %q", remainder)
	}
	if remainder := segmenter.Flush(); remainder != "" {
		t.Fatalf("second flush should be empty, got %q", remainder)
	}
}

func TestSegmenterFlushDropsWhitespace(t *testing.T) {
	t.Parallel()

	segmenter := segment.NewSegmenter(segment.Extractor{})
	if units := segmenter.Write("<p>a</p>  \n"); len(units) != 1 {
		t.Fatalf("expected one unit, got %q", units)
	}
	if remainder := segmenter.Flush(); remainder != "" {
		t.Fatalf("whitespace remainder should not flush, got %q", remainder)
	}

	segmenter.Write("<div>")
	segmenter.Reset()
	if pending := segmenter.Pending(); pending != "" {
		t.Fatalf("reset should clear pending text, got %q", pending)
	}
}

func TestSegmenterPreservesStream(t *testing.T) {
	t.Parallel()

	random := rand.New(rand.NewSource(11))
	for iteration := 0; iteration < 500; iteration++ {
		input := randomBuffer(random)
		segmenter := segment.NewSegmenter(segment.NewExtractor(segment.DefaultSelfClosingTags))
		var output strings.Builder
		for position := 0; position < len(input); {
			size := 1 + random.Intn(6)
			if position+size > len(input) {
				size = len(input) - position
			}
			for _, unit := range segmenter.Write(input[position : position+size]) {
				output.WriteString(unit)
			}
			position += size
		}
		output.WriteString(segmenter.Pending())
		if output.String() != input {
			t.Fatalf("segmented stream %q differs from input %q", output.String(), input)
		}
	}
}
