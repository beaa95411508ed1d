package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword 加盐单向散列，同一明文两次结果不同；只有内部错误才返回 err
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword 不匹配只返回 false，不报错
func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
