package accounts

import "time"

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// AccountSubtype refines the account classification for reporting.
type AccountSubtype string

const (
	SubtypeCash              AccountSubtype = "CASH"
	SubtypeBank              AccountSubtype = "BANK"
	SubtypeCurrentAsset      AccountSubtype = "CURRENT_ASSET"
	SubtypeFixedAsset        AccountSubtype = "FIXED_ASSET"
	SubtypeAccountsPayable   AccountSubtype = "ACCOUNTS_PAYABLE"
	SubtypeTaxLiability      AccountSubtype = "TAX_LIABILITY"
	SubtypeCurrentLiability  AccountSubtype = "CURRENT_LIABILITY"
	SubtypeLongTermLiability AccountSubtype = "LONG_TERM_LIABILITY"
	SubtypeOwnerEquity       AccountSubtype = "OWNER_EQUITY"
	SubtypeSalesRevenue      AccountSubtype = "SALES_REVENUE"
	SubtypeOtherRevenue      AccountSubtype = "OTHER_REVENUE"
	SubtypeOperatingExpense  AccountSubtype = "OPERATING_EXPENSE"
	SubtypeDepreciation      AccountSubtype = "DEPRECIATION_EXPENSE"
	SubtypeOtherExpense      AccountSubtype = "OTHER_EXPENSE"
)

// Account models a chart of accounts node.
type Account struct {
	ID        int64
	Code      string
	Name      string
	NameLocal string
	Type      AccountType
	Subtype   AccountSubtype
	Currency  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCashLike reports whether the account contributes to the cash position.
func (a Account) IsCashLike() bool {
	return a.Type == AccountTypeAsset && (a.Subtype == SubtypeCash || a.Subtype == SubtypeBank)
}

// IsTaxLiability reports whether the account holds accrued tax obligations.
func (a Account) IsTaxLiability() bool {
	return a.Type == AccountTypeLiability && a.Subtype == SubtypeTaxLiability
}

// CreditNormal reports whether the account increases on the credit side.
func (a Account) CreditNormal() bool {
	switch a.Type {
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return true
	default:
		return false
	}
}

// Spec describes an account to create lazily when a builder first needs it.
type Spec struct {
	Code      string
	Name      string
	NameLocal string
	Type      AccountType
	Subtype   AccountSubtype
	Currency  string
}

// Standard account specs used by the journal entry builders.
var (
	SpecIncomeSummary = Spec{Code: "3900", Name: "Income Summary", Type: AccountTypeEquity, Subtype: SubtypeOwnerEquity}
	SpecMiscExpense   = Spec{Code: "6999", Name: "Miscellaneous Expense", Type: AccountTypeExpense, Subtype: SubtypeOtherExpense}
)
