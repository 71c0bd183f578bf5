package models

// LocalID identifies something that only exists on this device: the runtime
// state file, trace fingerprints. It must never appear in a payload sent to
// the persistence layer.
type LocalID string

// ItemID is an identifier the persistence layer keys rows by. Session and
// item ids are minted once (uuid) at creation time and adopted verbatim by
// every later write. Keeping this a distinct type from LocalID makes the
// compiler reject payload builders that grab the wrong id.
type ItemID string

func (id ItemID) String() string  { return string(id) }
func (id LocalID) String() string { return string(id) }
