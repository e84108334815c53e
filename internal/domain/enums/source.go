package enums

type Source string

const (
	SourceBooli Source = "booli"
)
