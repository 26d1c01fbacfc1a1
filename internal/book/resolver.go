package book

import (
	"net/url"
	"sort"
	"strings"
)

// AccountsURLPrefix is the URL path under which accounts are shown.
const AccountsURLPrefix = "/book/accounts/"

// Chart is the account tree of a book indexed by guid and full name. The root
// account is reachable through Root but is not part of the lookup collection.
type Chart struct {
	Root   *Account
	byGUID map[string]*Account
	byName map[string]*Account
}

// NewChart links accounts into a tree below root. Accounts that do not descend
// from root (for example the scheduled transaction template tree) are dropped.
func NewChart(root *Account, accounts []*Account) *Chart {
	all := make(map[string]*Account, len(accounts)+1)
	all[root.GUID] = root
	for _, acc := range accounts {
		acc.Parent = nil
		acc.Children = nil
		all[acc.GUID] = acc
	}
	root.Parent = nil
	root.Children = nil

	for _, acc := range accounts {
		if acc.GUID == root.GUID {
			continue
		}
		if parent, ok := all[acc.ParentGUID]; ok {
			acc.Parent = parent
			parent.Children = append(parent.Children, acc)
		}
	}

	c := &Chart{
		Root:   root,
		byGUID: make(map[string]*Account, len(accounts)),
		byName: make(map[string]*Account, len(accounts)),
	}
	c.index(root)
	return c
}

func (c *Chart) index(parent *Account) {
	sort.Slice(parent.Children, func(i, j int) bool {
		return parent.Children[i].Name < parent.Children[j].Name
	})
	for _, child := range parent.Children {
		c.byGUID[child.GUID] = child
		c.byName[child.FullName()] = child
		c.index(child)
	}
}

// Accounts returns every non-root account in tree order.
func (c *Chart) Accounts() []*Account {
	accounts := make([]*Account, 0, len(c.byGUID))
	var walk func(*Account)
	walk = func(parent *Account) {
		for _, child := range parent.Children {
			accounts = append(accounts, child)
			walk(child)
		}
	}
	walk(c.Root)
	return accounts
}

// FindByName looks up an account by its full colon separated path.
func (c *Chart) FindByName(fullName string) (*Account, error) {
	acc, ok := c.byName[fullName]
	if !ok {
		return nil, &AccountNotFoundError{Name: fullName}
	}
	return acc, nil
}

// FindByGUID looks up a non-root account by guid.
func (c *Chart) FindByGUID(guid string) (*Account, error) {
	acc, ok := c.byGUID[guid]
	if !ok {
		return nil, &AccountNotFoundError{Name: guid}
	}
	return acc, nil
}

// Resolve returns the account at the given full path. The empty path is the
// root account.
func (c *Chart) Resolve(fullName string) (*Account, error) {
	if fullName == "" {
		return c.Root, nil
	}
	return c.FindByName(fullName)
}

// DecodeAccountPath turns a URL path of individually escaped account names
// separated by "/" into a full account name.
func DecodeAccountPath(raw string) (string, error) {
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return "", nil
	}
	parts := strings.Split(raw, "/")
	for i, part := range parts {
		name, err := url.QueryUnescape(part)
		if err != nil {
			return "", NewValidationError("account", "%v", err)
		}
		parts[i] = name
	}
	return strings.Join(parts, AccountSeparator), nil
}

// AccountURL returns the path showing the given account.
func AccountURL(acc *Account) string {
	if acc == nil || acc.IsRoot() {
		return AccountsURLPrefix
	}
	return AccountNameURL(acc.FullName())
}

// AccountNameURL returns the path showing the account with the given full
// name.
func AccountNameURL(fullName string) string {
	if fullName == "" {
		return AccountsURLPrefix
	}
	parts := strings.Split(fullName, AccountSeparator)
	for i, part := range parts {
		parts[i] = url.QueryEscape(part)
	}
	return AccountsURLPrefix + strings.Join(parts, "/")
}
