package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt 自带随机盐，同一明文两次哈希结果不同但都能校验通过
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword 常数时间比较，避免时序侧信道
func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
