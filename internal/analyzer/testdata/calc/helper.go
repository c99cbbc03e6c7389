package calc

// helperB adds through a fresh calculator
func helperB(x int) int {
	c := &Calculator{}
	return c.Add(x, 1)
}

func apply(f func(int, int) int, a, b int) int {
	return f(a, b)
}
