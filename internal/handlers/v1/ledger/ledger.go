package ledger

// Account is the API response model for the account a ledger belongs to.
type Account struct {
	GUID      string `json:"guid" doc:"Account GUID"`
	FullName  string `json:"fullName" doc:"Colon separated account path, empty for the root"`
	Type      string `json:"type" doc:"GnuCash account type"`
	Commodity string `json:"commodity,omitempty" doc:"Commodity mnemonic"`
}

// Entry is one split of the ledger with the balance after it.
type Entry struct {
	TransactionGUID string `json:"transactionGUID" doc:"Transaction GUID"`
	Date            string `json:"date" doc:"Posting date, YYYY-MM-DD"`
	Description     string `json:"description" doc:"Transaction description"`
	ContraAccount   string `json:"contraAccount,omitempty" doc:"Full name of the other account of a two split transaction"`
	Value           string `json:"value" doc:"Decimal value of the split"`
	Balance         string `json:"balance" doc:"Decimal running balance of the account"`
}
