package entity

// ContractStatus is the classification state of an address
type ContractStatus int

const (
	ContractStatusUnknown ContractStatus = iota
	ContractStatusAccount
	ContractStatusContract
)

func (s ContractStatus) String() string {
	switch s {
	case ContractStatusAccount:
		return "account"
	case ContractStatusContract:
		return "contract"
	default:
		return "unknown"
	}
}
