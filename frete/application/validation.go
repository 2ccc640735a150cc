package application

import (
	"errors"
	"reflect"
	"strings"

	"frete-proxy/frete/domain"

	"github.com/go-playground/validator/v10"
)

// validate é seguro para uso concorrente e guarda cache das structs.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// usa o nome do campo JSON nas mensagens (cep_origem, peso, ...)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateShipment confere os campos obrigatórios do pedido.
// Devolve *domain.InputError com os campos ausentes, na ordem da struct.
func ValidateShipment(req domain.ShipmentRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &domain.InputError{Reason: err.Error()}
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &domain.InputError{Fields: fields, Reason: "campos obrigatórios ausentes"}
}
