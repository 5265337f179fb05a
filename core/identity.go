package core

import "fmt"

// Identity identifies who issued a statement. It becomes the author of
// journal entries.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (identity Identity) String() string {
	return fmt.Sprintf("%s <%s>", identity.Name, identity.Email)
}
