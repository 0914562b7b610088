package chrona

import "github.com/tesserahq/chrona/id"

// ID is the primary identifier type for all Chrona entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
