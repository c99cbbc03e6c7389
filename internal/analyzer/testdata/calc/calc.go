package calc

type Calculator struct{}

func (c *Calculator) Add(a, b int) int {
	return a + b
}

func (c *Calculator) Multiply(a, b int) int {
	return a * b
}

func Sum[T ~int](xs ...T) T {
	var total T
	for _, x := range xs {
		total += x
	}
	return total
}
