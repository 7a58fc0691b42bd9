package ast

import (
	"errors"
	"fmt"
)

// ErrInvalidOperation reports a balance-group registration conflict.
var ErrInvalidOperation = errors.New("invalid balance group operation")

// BalanceGroupID is a handle to a balance group in a Balances arena.
type BalanceGroupID int

// BalanceItemID is a handle to a balance item in a Balances arena.
type BalanceItemID int

// Role is the part an item plays in its balance group.
type Role uint8

const (
	// RoleOpen items push the span they match onto the group.
	RoleOpen Role = iota + 1
	// RoleClose items pop the group's latest span.
	RoleClose
)

func (r Role) String() string {
	switch r {
	case RoleOpen:
		return "open"
	case RoleClose:
		return "close"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

// Balances is an arena of balance groups and items.
//
// Group membership is stored once, on the group; items are plain handles and
// never point back at their group.
type Balances struct {
	groups []balanceGroup
	items  int
}

type balanceGroup struct {
	name    string
	members map[BalanceItemID]Role
}

// NewBalances creates an empty arena.
func NewBalances() *Balances {
	return &Balances{}
}

// NewGroup allocates a balance group.
func (b *Balances) NewGroup(name string) BalanceGroupID {
	b.groups = append(b.groups, balanceGroup{name: name, members: make(map[BalanceItemID]Role)})
	return BalanceGroupID(len(b.groups) - 1)
}

// NewItem allocates an unbound item.
func (b *Balances) NewItem() BalanceItemID {
	b.items++
	return BalanceItemID(b.items - 1)
}

// Bind registers item in group g with the given role. Binding the same item
// to the same group and role twice is a no-op. It fails with
// ErrInvalidOperation when the item already belongs to another group or was
// registered with a different role.
func (b *Balances) Bind(g BalanceGroupID, item BalanceItemID, role Role) error {
	if int(g) < 0 || int(g) >= len(b.groups) {
		return fmt.Errorf("%w: unknown group %d", ErrInvalidOperation, g)
	}
	if int(item) < 0 || int(item) >= b.items {
		return fmt.Errorf("%w: unknown item %d", ErrInvalidOperation, item)
	}
	if role != RoleOpen && role != RoleClose {
		return fmt.Errorf("%w: invalid role %v", ErrInvalidOperation, role)
	}
	if owner, have, ok := b.Lookup(item); ok {
		if owner != g {
			return fmt.Errorf("%w: item %d already bound to group %q",
				ErrInvalidOperation, item, b.groups[owner].name)
		}
		if have != role {
			return fmt.Errorf("%w: item %d already registered as %v in group %q",
				ErrInvalidOperation, item, have, b.groups[g].name)
		}
		return nil
	}
	b.groups[g].members[item] = role
	return nil
}

// Lookup returns the group and role item is bound to.
func (b *Balances) Lookup(item BalanceItemID) (BalanceGroupID, Role, bool) {
	for gi, grp := range b.groups {
		if role, ok := grp.members[item]; ok {
			return BalanceGroupID(gi), role, true
		}
	}
	return 0, 0, false
}

// Groups returns the number of groups.
func (b *Balances) Groups() int {
	return len(b.groups)
}

// Name returns the name of group g.
func (b *Balances) Name(g BalanceGroupID) string {
	if int(g) < 0 || int(g) >= len(b.groups) {
		return ""
	}
	return b.groups[g].name
}
