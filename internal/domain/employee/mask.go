package employee

import "strings"

const (
	bankMaskPrefix    = "XXXXXX"
	panMaskPrefix     = "XXXXXX"
	aadhaarMaskPrefix = "XXXX XXXX "
)

// Mask returns a copy with identifiers reduced to their last four characters
// and every compensation figure removed. Masking a masked value is a no-op.
func Mask(e Employee) Employee {
	out := e
	out.BankAccount = maskTail(e.BankAccount, bankMaskPrefix, isDigit)
	out.PAN = maskTail(e.PAN, panMaskPrefix, isAlnum)
	out.Aadhaar = maskTail(e.Aadhaar, aadhaarMaskPrefix, isDigit)
	out.CTC = nil
	out.BasicSalary = nil
	out.GrossSalary = nil
	out.NetSalary = nil
	return out
}

func MaskAll(list []Employee) []Employee {
	out := make([]Employee, len(list))
	for i, e := range list {
		out[i] = Mask(e)
	}
	return out
}

func maskTail(value, prefix string, keep func(rune) bool) string {
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, prefix) {
		value = strings.TrimPrefix(value, prefix)
	}
	var kept []rune
	for _, r := range value {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	if len(kept) > 4 {
		kept = kept[len(kept)-4:]
	}
	return prefix + string(kept)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlnum(r rune) bool {
	return isDigit(r) || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}
