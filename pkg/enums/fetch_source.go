package enums

// FetchSource tells clients whether a proxied payload came from the backend
// or from the static fallback.
type FetchSource string

const (
	FetchSourceBackend  FetchSource = "backend"
	FetchSourceFallback FetchSource = "fallback"
)

// String implements fmt.Stringer.
func (f FetchSource) String() string {
	return string(f)
}
