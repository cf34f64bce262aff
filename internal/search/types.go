package search

import (
	"github.com/gcbaptista/gedcom-search/model"
	"github.com/gcbaptista/gedcom-search/services"
)

// recordRef identifies a record to score. seq is its position in provider
// order and breaks score ties.
type recordRef struct {
	recordType model.RecordType
	id         string
	seq        int
}

// candidateHit represents a scored record during search processing
type candidateHit struct {
	result services.ScoredResult
	seq    int
}

// recordWarning keeps provider order for warnings collected by workers
type recordWarning struct {
	warning services.Warning
	seq     int
}

// workerOutput is what one scoring worker hands back to Search
type workerOutput struct {
	hits     []candidateHit
	warnings []recordWarning
	scanned  map[model.RecordType]int
	stopped  bool // the context ended before every assigned record was scored
}
