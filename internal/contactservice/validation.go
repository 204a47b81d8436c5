package contactservice

import (
	"github.com/sushihentaime/portfolio/internal/common"
)

func validateName(v *common.Validator, name string) {
	v.Check(name != "", "name", "must be provided")
	v.Check(v.CheckStringLength(name, 2, 100), "name", "must be between 2 and 100 characters long")
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(len(email) <= 254, "email", "must not be more than 254 bytes long")
	v.Check(common.EmailRX.MatchString(email), "email", "must be a valid email address")
}

func validateSubject(v *common.Validator, subject string) {
	v.Check(subject != "", "subject", "must be provided")
	v.Check(v.CheckStringLength(subject, 5, 200), "subject", "must be between 5 and 200 characters long")
}

func validateMessage(v *common.Validator, message string) {
	v.Check(message != "", "message", "must be provided")
	v.Check(v.CheckStringLength(message, 10, 5000), "message", "must be between 10 and 5000 characters long")
}
