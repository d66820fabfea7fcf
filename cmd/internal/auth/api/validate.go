package authapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"cadastro/cmd/identity"
)

const (
	minStrictUsername = 3
	maxUsername       = 150
	maxEmail          = 254
	maxFullName       = 200
	maxAge            = 150

	defaultPageLimit = 10
	maxPageLimit     = 100
)

// validationError names the offending field; it always maps to 422.
type validationError struct {
	Field string
	Msg   string
}

func (e validationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalidField(field, msg string) error {
	return validationError{Field: field, Msg: msg}
}

type registration struct {
	Username string
	Password string
	Email    *string
	FullName *string
	Age      *int
}

func (h *Handler) validateRegistration(req registerRequest) (registration, error) {
	if req.Username == nil {
		return registration{}, invalidField("username", "campo obrigatório")
	}
	username, err := h.validateUsername(*req.Username)
	if err != nil {
		return registration{}, err
	}

	if req.Password == nil {
		return registration{}, invalidField("password", "campo obrigatório")
	}

	out := registration{Username: username, Password: *req.Password}

	switch {
	case req.Email != nil:
		email, err := validateEmail(*req.Email)
		if err != nil {
			return registration{}, err
		}
		out.Email = &email
	case h.cfg.RequireEmail:
		return registration{}, invalidField("email", "campo obrigatório")
	}

	if out.FullName, err = validateFullName(req.FullName); err != nil {
		return registration{}, err
	}
	if err := validateAge(req.Age); err != nil {
		return registration{}, err
	}
	out.Age = req.Age

	return out, nil
}

func (h *Handler) validateUsername(raw string) (string, error) {
	username := identity.NormalizeUsername(raw)
	n := utf8.RuneCountInString(username)

	if n == 0 {
		return "", invalidField("username", "não pode ser vazio")
	}
	if n > maxUsername {
		return "", invalidField("username", fmt.Sprintf("no máximo %d caracteres", maxUsername))
	}
	if !h.cfg.StrictUsername {
		return username, nil
	}

	if n < minStrictUsername {
		return "", invalidField("username", fmt.Sprintf("no mínimo %d caracteres", minStrictUsername))
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", invalidField("username", "apenas letras e números")
		}
	}
	return username, nil
}

// validateEmail requires local@domain with a dot inside the domain.
func validateEmail(raw string) (string, error) {
	email := identity.NormalizeEmail(raw)
	if email == "" {
		return "", invalidField("email", "não pode ser vazio")
	}
	if len(email) > maxEmail {
		return "", invalidField("email", "muito longo")
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") || strings.ContainsFunc(email, unicode.IsSpace) {
		return "", invalidField("email", "formato inválido")
	}
	dot := strings.LastIndexByte(domain, '.')
	if dot <= 0 || dot == len(domain)-1 {
		return "", invalidField("email", "formato inválido")
	}
	return email, nil
}

func validateFullName(p *string) (*string, error) {
	if p == nil {
		return nil, nil
	}
	name := strings.TrimSpace(*p)
	if utf8.RuneCountInString(name) > maxFullName {
		return nil, invalidField("full_name", fmt.Sprintf("no máximo %d caracteres", maxFullName))
	}
	return &name, nil
}

func validateAge(p *int) error {
	if p == nil {
		return nil
	}
	if *p < 0 || *p > maxAge {
		return invalidField("age", fmt.Sprintf("deve estar entre 0 e %d", maxAge))
	}
	return nil
}

func validateUpdate(req updateRequest) (identity.Patch, error) {
	var patch identity.Patch

	if req.Email != nil {
		email, err := validateEmail(*req.Email)
		if err != nil {
			return identity.Patch{}, err
		}
		patch.Email = &email
	}

	name, err := validateFullName(req.FullName)
	if err != nil {
		return identity.Patch{}, err
	}
	patch.FullName = name

	if err := validateAge(req.Age); err != nil {
		return identity.Patch{}, err
	}
	patch.Age = req.Age

	if patch.Empty() {
		return identity.Patch{}, invalidField("body", "nenhum campo para atualizar")
	}
	return patch, nil
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, invalidField("id", "deve ser um número inteiro")
	}
	return id, nil
}

func parseLimit(q url.Values) (int, error) {
	v := strings.TrimSpace(q.Get("limite"))
	if v == "" {
		return defaultPageLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxPageLimit {
		return 0, invalidField("limite", fmt.Sprintf("deve estar entre 1 e %d", maxPageLimit))
	}
	return n, nil
}

func parseOffset(q url.Values) (int, error) {
	v := strings.TrimSpace(q.Get("offset"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, invalidField("offset", "deve ser maior ou igual a 0")
	}
	return n, nil
}
