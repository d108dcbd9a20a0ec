package sale

import "fmt"

// AssertOwner fails with ErrNotOwner unless caller is the contract owner.
func (c *Contract) AssertOwner(caller string) error {
	return c.view(func(st *state) error {
		return st.assertOwner(caller)
	})
}

func (st *state) assertOwner(caller string) error {
	if caller != st.owner {
		return fmt.Errorf("%w: caller %q", ErrNotOwner, caller)
	}
	return nil
}
