package validator

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// BusinessValidator 业务规则验证器
type BusinessValidator struct {
	validator *validator.Validate
}

// NewBusinessValidator 创建新的业务验证器
func NewBusinessValidator() *BusinessValidator {
	v := validator.New()

	// 注册自定义验证规则
	v.RegisterValidation("round_number", validateRoundNumber)
	v.RegisterValidation("admin_action", validateAdminAction)
	v.RegisterValidation("positive_number", validatePositiveNumber)

	return &BusinessValidator{
		validator: v,
	}
}

// Validate 验证结构体
func (bv *BusinessValidator) Validate(i interface{}) error {
	return bv.validator.Struct(i)
}

// validateRoundNumber 验证回合编号
// 回合编号从 1 开始；上限取拳击/综合格斗的常规最大回合数，
// 具体是否超过该场比赛的排定回合数由后端判定。
func validateRoundNumber(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= 1 && n <= 15
}

// validateAdminAction 验证管理动作标识格式
// 动作词汇表由后端定义且可扩展，这里只校验格式：小写字母 + 下划线。
// 未知但格式合法的动作原样转发，由后端决定是否接受。
func validateAdminAction(fl validator.FieldLevel) bool {
	action := fl.Field().String()
	if len(action) < 2 || len(action) > 64 {
		return false
	}
	matched, _ := regexp.MatchString(`^[a-z][a-z0-9_]*[a-z0-9]$`, action)
	return matched
}

// validatePositiveNumber 验证正数
func validatePositiveNumber(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fl.Field().Int() > 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fl.Field().Uint() > 0
	case reflect.Float32, reflect.Float64:
		return fl.Field().Float() > 0
	}
	return false
}

// GetValidationErrorMessage 获取验证错误的友好消息
func GetValidationErrorMessage(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			field := fieldError.Field()
			tag := fieldError.Tag()

			switch tag {
			case "required":
				return fmt.Sprintf("字段 %s 是必填项", field)
			case "round_number":
				return "回合编号必须在1-15之间"
			case "admin_action":
				return "管理动作格式不正确：必须是2-64位小写字母、数字或下划线"
			case "positive_number":
				return fmt.Sprintf("字段 %s 必须是正数", field)
			case "min":
				return fmt.Sprintf("字段 %s 的值太小", field)
			case "max":
				return fmt.Sprintf("字段 %s 的值太大", field)
			case "uuid":
				return "UUID格式不正确"
			default:
				return fmt.Sprintf("字段 %s 验证失败：%s", field, tag)
			}
		}
	}

	return "验证失败：" + err.Error()
}
