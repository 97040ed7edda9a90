package tape

// CallsiteID is the stable 64-bit identifier of a callsite, derived
// from the source callsite identity via a process-keyed hash (see
// internal/ids).
type CallsiteID uint64

// FieldID is the stable 64-bit identifier of a callsite field,
// derived from the field name via the same keyed hash as CallsiteID.
type FieldID uint64

// ThreadID is the stable 64-bit identifier of a thread of execution.
type ThreadID uint64

// SpanID is the stable 64-bit identifier of a span.
type SpanID uint64
