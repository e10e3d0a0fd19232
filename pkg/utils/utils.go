package utils

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// etherDecimals is the number of decimal places between wei and ether
const etherDecimals = 18

// etherPrecision is the mantissa precision used for wei to ether conversions
const etherPrecision = 256

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(etherDecimals), nil)

// FormatDuration formats duration in human readable format
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else {
		return fmt.Sprintf("%.1fd", d.Hours()/24)
	}
}

// ValidateEthereumAddress validates Ethereum address format
func ValidateEthereumAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") {
		return false
	}
	return common.IsHexAddress(address)
}

// BigIntToString safely converts big.Int to string
func BigIntToString(bi *big.Int) string {
	if bi == nil {
		return "0"
	}
	return bi.String()
}

// StringToBigInt parses a base 10 integer string, rejecting anything else
func StringToBigInt(s string) (*big.Int, error) {
	bi, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return bi, nil
}

// WeiToEther converts wei to ether
func WeiToEther(wei *big.Int) *big.Float {
	if wei == nil {
		return new(big.Float).SetPrec(etherPrecision)
	}

	weiFloat := new(big.Float).SetPrec(etherPrecision).SetInt(wei)
	etherUnit := new(big.Float).SetPrec(etherPrecision).SetInt(weiPerEther)

	return new(big.Float).SetPrec(etherPrecision).Quo(weiFloat, etherUnit)
}

// FormatEther renders a wei amount as an exact decimal ether string without trailing zeros
func FormatEther(wei *big.Int) string {
	if wei == nil || wei.Sign() == 0 {
		return "0"
	}

	abs := new(big.Int).Abs(wei)
	whole, frac := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))

	sign := ""
	if wei.Sign() < 0 {
		sign = "-"
	}

	if frac.Sign() == 0 {
		return sign + whole.String()
	}

	fracStr := frac.String()
	fracStr = strings.Repeat("0", etherDecimals-len(fracStr)) + fracStr
	fracStr = strings.TrimRight(fracStr, "0")
	return sign + whole.String() + "." + fracStr
}

// MinUint64 returns minimum of two uint64
func MinUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// MaxUint64 returns maximum of two uint64
func MaxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
