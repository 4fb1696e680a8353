package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	ParseError      = 4
	WriteError      = 5
	FetchError      = 6
	PartialSuccess  = 7
)
