package authservice

import "github.com/sushihentaime/portfolio/internal/common"

func validateSecret(v *common.Validator, plain string) {
	v.Check(plain != "", "password", "must be provided")
	v.Check(len(plain) <= 72, "password", "must not be more than 72 bytes long")
}
