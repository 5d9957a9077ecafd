package logfields

const (
	LogSubsys    = "subsys"
	LogComponent = "component"

	// File the path of the ELF image
	File = "file"

	// Segment the index of a PT_DYNAMIC segment
	Segment = "segment"

	Symbols = "symbols"
	Address = "address"
)
