package cache

// RootQueryID is the entity id holding root query fields.
const RootQueryID = "ROOT_QUERY"

// Snapshot is the serialized cache: entity id -> field name -> value.
type Snapshot map[string]map[string]any
