package engine

type testQuery map[string][]string

func (q testQuery) Names() []string {
	names := make([]string, 0, len(q))
	for name := range q {
		names = append(names, name)
	}
	return names
}

func (q testQuery) Values(name string) []string {
	return q[name]
}
