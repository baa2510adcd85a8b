package gateway

import "math/rand/v2"

const displayIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateDisplayID 生成 "S" + 3 位大写字母数字的展示学号。
// 不与已有记录查重，存在碰撞可能。
func GenerateDisplayID() string {
	b := make([]byte, 4)
	b[0] = 'S'
	for i := 1; i < len(b); i++ {
		b[i] = displayIDAlphabet[rand.IntN(len(displayIDAlphabet))]
	}
	return string(b)
}
