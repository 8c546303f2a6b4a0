package datasource

import (
	"github.com/temirov/uistream/internal/binding"
)

func song(title, artist string, plays int64) binding.Record {
	return binding.Record{"title": binding.String(title), "artist": binding.String(artist), "plays": binding.Integer(plays)}
}

func city(name, country string, days, photos int64) binding.Record {
	return binding.Record{
		"name":    binding.String(name),
		"country": binding.String(country),
		"days":    binding.Integer(days),
		"photos":  binding.Integer(photos),
	}
}

func workout(kind string, count, calories int64) binding.Record {
	return binding.Record{"type": binding.String(kind), "count": binding.Integer(count), "calories": binding.Integer(calories)}
}

func book(title, author string, rating int64) binding.Record {
	return binding.Record{"title": binding.String(title), "author": binding.String(author), "rating": binding.Integer(rating)}
}

// Sample returns a fresh copy of the demo graph used when no data file is configured.
func Sample() binding.Graph {
	return binding.Graph{
		"music": {
			"top_songs": binding.Sequence{
				song("Blinding Lights", "The Weeknd", 342),
				song("Levitating", "Dua Lipa", 289),
			},
			"total_minutes": binding.Integer(87234),
			"top_genres":    binding.Sequence{binding.String("Pop"), binding.String("Electronic"), binding.String("Hip-Hop")},
		},
		"travel": {
			"cities": binding.Sequence{
				city("Tokyo", "Japan", 7, 156),
				city("Paris", "France", 5, 89),
			},
			"total_countries": binding.Integer(8),
		},
		"fitness": {
			"workouts":      binding.Integer(127),
			"total_minutes": binding.Integer(5430),
			"by_type": binding.Sequence{
				workout("Running", 45, 12300),
				workout("Strength", 50, 6700),
			},
		},
		"reading": {
			"books_read":  binding.Integer(52),
			"total_pages": binding.Integer(18420),
			"top_books": binding.Sequence{
				book("Project Hail Mary", "Andy Weir", 5),
				book("The Midnight Library", "Matt Haig", 4),
			},
		},
	}
}
