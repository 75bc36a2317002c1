// Package validator 将 go-playground/validator 挂接到 gin 的绑定校验
package validator

import (
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	valV10 "github.com/go-playground/validator/v10"
)

// CustomValidator 实现 binding.StructValidator
type CustomValidator struct {
	once     sync.Once
	validate *valV10.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

func (v *CustomValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}
	v.lazyinit()
	return v.validate.Struct(obj)
}

func (v *CustomValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = valV10.New()
		v.validate.SetTagName("binding")
	})
}

// RegisterCustom 注册业务自定义校验规则
func RegisterCustom() {
	validate, ok := binding.Validator.Engine().(*valV10.Validate)
	if !ok {
		return
	}

	// share_kind 分享类型
	_ = validate.RegisterValidation("share_kind", func(fl valV10.FieldLevel) bool {
		switch fl.Field().String() {
		case "quote", "timeline", "combined":
			return true
		}
		return false
	})
}
