package store

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*FakeStore)(nil)
)
