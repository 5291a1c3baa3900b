package middleware

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/cstockton/go-conv"
	"github.com/labstack/echo/v4"
)

// BindAndValidate binds the request into req and validates it.
// Besides echo's default binding (path, body or form, and query on GET) it
// fills `header` tagged fields and, on any method, empty `query` tagged fields.
// Binding and validation failures are reported as 400.
func BindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}

	if err := bindHeader(c.Request().Header, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := bindQuery(c, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}

// bindHeader decode http header to struct by tag `header:"<header_name>"`
// out must be a pointer to a struct
func bindHeader(header http.Header, dst interface{}) error {
	getValueFn := func(tagValue string) (interface{}, error) {
		return header.Get(tagValue), nil
	}

	return bindStruct(dst, "header", getValueFn)
}

// bindQuery fills fields tagged `query:"<name>"` that are still zero.
func bindQuery(c echo.Context, dst interface{}) error {
	getValueFn := func(tagValue string) (interface{}, error) {
		return c.QueryParam(tagValue), nil
	}

	return bindStruct(dst, "query", getValueFn, onlyZero)
}

type bindOption func(field reflect.Value) bool

func onlyZero(field reflect.Value) bool {
	return field.IsZero()
}

// bindStruct decode to struct by custom tag `tagName:"tagValue"`.
// Empty values are skipped. dst must be a pointer to a struct.
func bindStruct(dst interface{}, tagName string, getValueFn func(tagValue string) (interface{}, error), filters ...bindOption) error {
	ptr := reflect.ValueOf(dst)
	if ptr.Kind() != reflect.Ptr {
		return fmt.Errorf("non-pointer passed to Unmarshal")
	}

	indirect := reflect.Indirect(ptr)
	structType := indirect.Type()

	for i := 0; i < structType.NumField(); i++ {
		structField := structType.Field(i)
		tagValue := structField.Tag.Get(tagName)
		if tagValue == "-" || tagValue == "" {
			continue
		}

		field := indirect.Field(i)
		if !accept(field, filters) {
			continue
		}
		value, err := getValueFn(tagValue)
		if err != nil {
			return err
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		if err := conv.Infer(field, value); err != nil {
			return fmt.Errorf("cannot parse %s.%s as %s from: %#v / %s",
				structType.Name(), structField.Name, field.Type(), value, err)
		}
	}

	return nil
}

func accept(field reflect.Value, filters []bindOption) bool {
	for _, f := range filters {
		if !f(field) {
			return false
		}
	}
	return true
}
