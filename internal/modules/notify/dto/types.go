package dto

type NotifierInfo struct {
	Name    string
	Version string
	Binary  string
	Enabled bool
}

type DoctorResult struct {
	Name            string
	BinaryReachable bool
	ChecksumValid   bool
	LifecycleOK     bool
	Error           string
}
