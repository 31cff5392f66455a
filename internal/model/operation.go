package model

// OperationKind distinguishes the three kinds of trackable operations.
type OperationKind string

const (
	// OperationLoad tracks loading works for a category.
	OperationLoad OperationKind = "load"
	// OperationGenerate tracks scenario generation for a matrix cell.
	OperationGenerate OperationKind = "generate"
	// OperationMatch tracks matching works to a scenario.
	OperationMatch OperationKind = "match"
)

// OperationID keys in-flight progress. The kind prefix keeps a category id
// from ever colliding with a scenario id of the same spelling.
type OperationID struct {
	Kind OperationKind
	Key  string
}

// LoadOperation returns the operation id for loading works into a category.
func LoadOperation(categoryID string) OperationID {
	return OperationID{Kind: OperationLoad, Key: categoryID}
}

// GenerateOperation returns the operation id for a matrix cell.
func GenerateOperation(key MatrixKey) OperationID {
	return OperationID{Kind: OperationGenerate, Key: key.String()}
}

// MatchOperation returns the operation id for a scenario.
func MatchOperation(scenarioID string) OperationID {
	return OperationID{Kind: OperationMatch, Key: scenarioID}
}

func (id OperationID) String() string {
	return string(id.Kind) + "/" + id.Key
}

// OperationProgress is the transient, simulated completion of one operation.
type OperationProgress struct {
	Label   string
	Percent float64
}

// BulkKind selects the candidate rule of a bulk run.
type BulkKind string

const (
	// BulkLoad loads works for every empty category.
	BulkLoad BulkKind = "load"
	// BulkGenerate proposes scenarios for every pending matrix cell.
	BulkGenerate BulkKind = "generate"
	// BulkMatch matches works for every scenario without works.
	BulkMatch BulkKind = "match"
)

// ParseBulkKind validates a bulk kind name.
func ParseBulkKind(s string) (BulkKind, bool) {
	switch BulkKind(s) {
	case BulkLoad, BulkGenerate, BulkMatch:
		return BulkKind(s), true
	}
	return "", false
}

// BulkRun is the state of the single active batch.
type BulkRun struct {
	Kind    BulkKind
	Label   string
	Total   int
	Current int
}
