package book

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountSeparator joins account names into a full account path.
const AccountSeparator = ":"

// CurrencyNamespace is the commodity namespace holding currencies.
const CurrencyNamespace = "CURRENCY"

// AccountType is the GnuCash account type tag.
type AccountType string

const (
	AccountTypeAsset      AccountType = "ASSET"
	AccountTypeBank       AccountType = "BANK"
	AccountTypeCash       AccountType = "CASH"
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeCredit     AccountType = "CREDIT"
	AccountTypeEquity     AccountType = "EQUITY"
	AccountTypeExpense    AccountType = "EXPENSE"
	AccountTypeIncome     AccountType = "INCOME"
	AccountTypeLiability  AccountType = "LIABILITY"
	AccountTypeMutual     AccountType = "MUTUAL"
	AccountTypePayable    AccountType = "PAYABLE"
	AccountTypeReceivable AccountType = "RECEIVABLE"
	AccountTypeRoot       AccountType = "ROOT"
	AccountTypeStock      AccountType = "STOCK"
	AccountTypeTrading    AccountType = "TRADING"
)

var accountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeBank,
	AccountTypeCash,
	AccountTypeChecking,
	AccountTypeCredit,
	AccountTypeEquity,
	AccountTypeExpense,
	AccountTypeIncome,
	AccountTypeLiability,
	AccountTypeMutual,
	AccountTypePayable,
	AccountTypeReceivable,
	AccountTypeRoot,
	AccountTypeStock,
	AccountTypeTrading,
}

// SelectableAccountTypes returns every account type a user may assign, which is
// all of them except ROOT.
func SelectableAccountTypes() []AccountType {
	types := make([]AccountType, 0, len(accountTypes)-1)
	for _, t := range accountTypes {
		if t != AccountTypeRoot {
			types = append(types, t)
		}
	}
	return types
}

// ParseAccountType converts a type tag into an AccountType, rejecting unknown
// tags and ROOT.
func ParseAccountType(s string) (AccountType, bool) {
	for _, t := range SelectableAccountTypes() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Commodity represents a currency or other tradable unit.
type Commodity struct {
	GUID      string
	Namespace string
	Mnemonic  string
	Fullname  string
	Fraction  int64
}

// Equal reports whether both commodities are the same book entity.
func (c *Commodity) Equal(other *Commodity) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.GUID == other.GUID
}

func (c *Commodity) String() string {
	if c == nil {
		return "<none>"
	}
	return c.Namespace + ":" + c.Mnemonic
}

// Account represents a node of the account tree.
type Account struct {
	GUID        string
	Name        string
	Code        string
	Description string
	Type        AccountType
	Commodity   *Commodity
	// CommoditySCU is the smallest currency unit denominator. When NonStdSCU is
	// false it mirrors the commodity fraction.
	CommoditySCU int64
	NonStdSCU    bool
	Placeholder  bool
	Hidden       bool
	ParentGUID   string

	Parent   *Account
	Children []*Account
}

// IsRoot reports whether the account is the book's root account.
func (a *Account) IsRoot() bool {
	return a.Type == AccountTypeRoot
}

// FullName returns the colon separated path of the account. The root account
// has an empty full name.
func (a *Account) FullName() string {
	var names []string
	for acc := a; acc != nil && !acc.IsRoot(); acc = acc.Parent {
		names = append(names, acc.Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, AccountSeparator)
}

// IsDescendantOf reports whether a sits anywhere below ancestor.
func (a *Account) IsDescendantOf(ancestor *Account) bool {
	for acc := a.Parent; acc != nil; acc = acc.Parent {
		if acc.GUID == ancestor.GUID {
			return true
		}
	}
	return false
}

// Split is one leg of a transaction.
type Split struct {
	GUID            string
	TransactionGUID string
	AccountGUID     string
	Memo            string
	Value           decimal.Decimal
}

// Transaction represents a double-entry transaction with its splits.
type Transaction struct {
	GUID        string
	Currency    *Commodity
	Num         string
	Description string
	PostDate    time.Time
	EnterDate   time.Time
	Splits      []*Split
}

// Balance returns the sum of all split values. A balanced transaction sums to
// zero.
func (t *Transaction) Balance() decimal.Decimal {
	sum := decimal.Zero
	for _, s := range t.Splits {
		sum = sum.Add(s.Value)
	}
	return sum
}

// LedgerEntry is a split of an account together with the transaction it
// belongs to.
type LedgerEntry struct {
	Split       *Split
	Transaction *Transaction
}
