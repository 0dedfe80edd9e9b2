//go:generate go run github.com/fetchkit/batchloader/cmd/batchloadgen -name UserLoader -keyType string -valueType User -package example

package example

// User is some kind of database backed model
type User struct {
	ID   string
	Name string
}
