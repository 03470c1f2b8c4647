package validator

// NewForTest returns a validator and a helper that builds the Violation a
// test expects, both rooted at filename "test.yaml" - used throughout this
// package's tests to avoid repeating the same boilerplate in every case.
func NewForTest() (*Validator, func(path, message string) Violation) {
	v := New("test.yaml")
	violation := func(path, message string) Violation {
		return Violation{Filename: "test.yaml", Path: "$" + path, Message: message}
	}
	return v, violation
}
