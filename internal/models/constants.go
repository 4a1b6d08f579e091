package models

import "math/big"

// AddressZero — нулевой адрес: «переводчик не назначен».
const AddressZero = "0x0000000000000000000000000000000000000000"

// NonPayableValue возвращает 2^256 - 1 — сентинел «оплатить невозможно»
// для недоступной стоимости апелляции. Каждый вызов возвращает новое
// значение, чтобы вызывающий код не мог испортить общий big.Int.
func NonPayableValue() *big.Int {
	v := new(big.Int).Lsh(big.NewInt(1), 256)
	return v.Sub(v, big.NewInt(1))
}
