package testcase

import (
	"fmt"

	"texest/internal/expr"
	"texest/internal/validator"
	"texest/internal/value"
)

// ParseExpr desugars a raw document Value into an expr.Expr, recognizing
// the "single-key map whose key starts with $" convention. Malformed
// qualified forms record a violation and fall back to a literal-null
// expression so parsing can continue and collect further violations.
func ParseExpr(v *validator.Validator, val value.Value) *expr.Expr {
	name, param, ok := v.MayBeQualified(val)
	if !ok {
		return &expr.Expr{Kind: expr.KindLiteral, Literal: val}
	}

	switch name {
	case "$var":
		return validator.InField(v, name, func(v *validator.Validator) *expr.Expr {
			s, ok := v.MustBeString(param)
			if !ok {
				return &expr.Expr{Kind: expr.KindLiteral, Literal: value.Null()}
			}
			return &expr.Expr{Kind: expr.KindVar, VarName: s}
		})

	case "$env":
		return validator.InField(v, name, func(v *validator.Validator) *expr.Expr {
			if param.Kind == value.KindString {
				return &expr.Expr{Kind: expr.KindEnvVar, EnvName: param.String}
			}
			m, ok := v.MustBeMap(param)
			if !ok {
				return &expr.Expr{Kind: expr.KindLiteral, Literal: value.Null()}
			}
			envName, _ := v.MustHaveString(m, "name")
			var def *string
			if d, present := v.MayHaveString(m, "default"); present {
				def = &d
			}
			return &expr.Expr{Kind: expr.KindEnvVar, EnvName: envName, EnvDefault: def}
		})

	case "$yaml":
		return validator.InField(v, name, func(v *validator.Validator) *expr.Expr {
			return &expr.Expr{Kind: expr.KindYamlOf, Inner: ParseExpr(v, param)}
		})

	case "$json":
		return validator.InField(v, name, func(v *validator.Validator) *expr.Expr {
			return &expr.Expr{Kind: expr.KindJsonOf, Inner: ParseExpr(v, param)}
		})

	case "$tmp_file":
		return validator.InField(v, name, func(v *validator.Validator) *expr.Expr {
			m, ok := v.MustBeMap(param)
			if !ok {
				return &expr.Expr{Kind: expr.KindLiteral, Literal: value.Null()}
			}
			fileName, _ := v.MustHaveString(m, "name")
			contentsVal, present := m.Get("contents")
			var contents *expr.Expr
			if present {
				contents = validator.InField(v, "contents", func(v *validator.Validator) *expr.Expr {
					return ParseExpr(v, contentsVal)
				})
			} else {
				v.AddViolation("should have .contents")
				contents = &expr.Expr{Kind: expr.KindLiteral, Literal: value.Str("")}
			}
			return &expr.Expr{Kind: expr.KindTmpFile, TmpFileName: fileName, TmpFileBody: contents}
		})

	case "$tmp_port":
		return validator.InField(v, name, func(v *validator.Validator) *expr.Expr {
			s, ok := v.MustBeString(param)
			if !ok {
				return &expr.Expr{Kind: expr.KindLiteral, Literal: value.Null()}
			}
			return &expr.Expr{Kind: expr.KindTmpPort, TmpPortAlias: s}
		})

	default:
		v.AddViolation(fmt.Sprintf("unknown expression %q", name))
		return &expr.Expr{Kind: expr.KindLiteral, Literal: value.Null()}
	}
}

// Literal is a convenience constructor used by defaults (e.g. stdin's
// default empty string) where no document node exists to parse from.
func Literal(v value.Value) *expr.Expr {
	return &expr.Expr{Kind: expr.KindLiteral, Literal: v}
}
