package euclid

import "fmt"

// ExampleCompute shows the remainder sequence for gcd(120, 45).
func ExampleCompute() {
	trace := Compute(120, 45)
	for _, s := range trace.Steps {
		fmt.Println(s)
	}
	fmt.Println("gcd =", trace.GCD)
	// Output:
	// 120 % 45 = 30
	// 45 % 30 = 15
	// 30 % 15 = 0
	// gcd = 15
}

// ExampleParseOperands shows how invalid input is rejected before tracing.
func ExampleParseOperands() {
	if _, _, err := ParseOperands("12", "-3"); err != nil {
		fmt.Println(err)
	}
	// Output:
	// b: must be a positive integer
}
