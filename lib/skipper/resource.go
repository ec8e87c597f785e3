package skipper

// Location is implemented by records served at their own URL.
type Location interface {
	Location() string
}

// Resource is a stored record exposed by the API: it has a table, a primary
// key of type ID and a location.
type Resource[ID any] interface {
	Location
	TableName() string
	PrimaryKey() ID
}
