// Package cache defines the disk-backed store for parsed song records. Every
// record lives next to its source tree at <datadir>/.cache/<subpath>, written
// with temp file + rename so readers never see a half-written entry. Loading
// is best effort: missing or undecodable entries are reported as a typed
// status instead of an error, so a damaged cache can never block a build.
// The song resolver owns the validation policy (content hash + format
// version); this package only stores and decodes bytes.
package cache
