package handler

import (
	"errors"
	"fmt"
)

var (
	errNoTemplates = errors.New("handler: no templates available")
	// errBadRequest marks malformed requests.
	errBadRequest = errors.New("handler: bad request")
)

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}
