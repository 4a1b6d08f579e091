package validation

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/glossa-labs/glossa-backend/internal/pkg/apperror"
)

// IsHexAddress проверяет форму адреса: 0x и 40 шестнадцатеричных символов.
func IsHexAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// ChecksumAddress возвращает адрес в EIP-55 записи: регистр каждой буквы
// определяется соответствующим полубайтом keccak256 от нижнерегистрового
// адреса без префикса.
func ChecksumAddress(s string) (string, error) {
	if !IsHexAddress(s) {
		return "", apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("некорректный адрес %q", s))
	}

	lower := strings.ToLower(s[2:])

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	sum := h.Sum(nil)

	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' {
			nibble := sum[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c = c - 'a' + 'A'
			}
		}
		out[i] = c
	}
	return "0x" + string(out), nil
}

// NormalizeAddress приводит адрес к EIP-55 записи. Если адрес уже в
// смешанном регистре, контрольная сумма обязана сходиться.
func NormalizeAddress(s string) (string, error) {
	checksummed, err := ChecksumAddress(s)
	if err != nil {
		return "", err
	}

	hasUpper := strings.ContainsAny(s[2:], "ABCDEF")
	hasLower := strings.ContainsAny(s[2:], "abcdef")
	if hasUpper && hasLower && s != checksummed {
		return "", apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("контрольная сумма адреса %q не сходится", s))
	}
	return checksummed, nil
}

// SameAddress сравнивает два адреса без учёта регистра.
func SameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}
