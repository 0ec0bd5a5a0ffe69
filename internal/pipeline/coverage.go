package pipeline

import (
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/normalize"
)

// Coverage reports how many records in a batch carried at least one known
// field alias.
type Coverage struct {
	Records int `json:"records"`
	Covered int `json:"covered"`
}

// Drifted reports a non-empty batch in which no record matched any alias,
// which means the upstream schema changed rather than the search being bad.
func (c Coverage) Drifted() bool {
	return c.Records > 0 && c.Covered == 0
}

// SchemaCoverage measures alias coverage over records.
func SchemaCoverage(records []model.RawRecord, aliases normalize.Aliases) Coverage {
	c := Coverage{Records: len(records)}
	for _, r := range records {
		if aliases.Covers(r) {
			c.Covered++
		}
	}
	return c
}

// Aliases returns the aliases the pipeline normalizes with.
func (p *Pipeline) Aliases() normalize.Aliases {
	return p.aliases
}
