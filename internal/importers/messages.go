package importers

// Messages reported for session-fatal conditions and rejected rows.
const (
	MsgInvalidFile           = "File format is invalid."
	MsgInvalidEncoding       = "Invalid encoding specified"
	MsgInvalidDelimiter      = "Invalid delimiter specified"
	MsgInvalidParentCategory = "Parent category is invalid."
	MsgInvalidHeaders        = "File headers are invalid. Not enough columns, please verify the delimiter setting."
	MsgNoRecords             = "No records in import file."
	MsgSessionExpired        = "Import session has expired or does not exist."
	MsgInvalidRecord         = "Invalid import record."
)
