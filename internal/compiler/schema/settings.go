package schema

import (
	"fmt"

	"github.com/traitenum/traitenum/internal/compiler/annotation"
	"github.com/traitenum/traitenum/internal/model"
)

// applySetting writes one setting into the matching case of def. Errors wrap
// model sentinels so the caller can classify them.
func applySetting(def *model.AttributeDefinition, setting annotation.Setting) error {
	switch setting.Name {
	case "default":
		return applyDefault(def, setting)
	case "preset":
		return applyPreset(def, setting)
	case "start", "increment":
		if def.Kind != model.DefNum {
			return unsupported(def, setting)
		}
		arg, err := setting.Arg()
		if err != nil {
			return err
		}
		v, err := annotation.Number(def.Num.Kind, arg)
		if err != nil {
			return err
		}
		if setting.Name == "start" {
			def.Num.Start = &v
		} else {
			def.Num.Increment = &v
		}
		return nil
	case "nature":
		if def.Kind != model.DefRel {
			return unsupported(def, setting)
		}
		name, err := singleName(setting)
		if err != nil {
			return err
		}
		nature, err := model.ParseRelationNature(name)
		if err != nil {
			return err
		}
		def.Rel.Nature = &nature
		return nil
	case "dispatch":
		if def.Kind != model.DefRel {
			return unsupported(def, setting)
		}
		name, err := singleName(setting)
		if err != nil {
			return err
		}
		dispatch, err := model.ParseDispatch(name)
		if err != nil {
			return err
		}
		def.Rel.Dispatch = &dispatch
		return nil
	default:
		return fmt.Errorf("%w: %s", model.ErrUnknownSetting, setting.Name)
	}
}

func applyDefault(def *model.AttributeDefinition, setting annotation.Setting) error {
	if def.Kind == model.DefRel {
		return unsupported(def, setting)
	}
	arg, err := setting.Arg()
	if err != nil {
		return err
	}
	v, err := annotation.Value(*def, arg)
	if err != nil {
		return err
	}

	switch def.Kind {
	case model.DefBool:
		def.Bool.Default = &v.Bool
	case model.DefStr:
		def.Str.Default = &v.Str
	case model.DefNum:
		def.Num.Default = &v
	case model.DefEnum:
		def.Enum.Default = v.ID
	case model.DefType:
		def.Type.Default = v.ID
	}
	return nil
}

func applyPreset(def *model.AttributeDefinition, setting annotation.Setting) error {
	names := make([]string, 0, len(setting.Args))
	for _, arg := range setting.Args {
		name, err := annotation.Name(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
	}

	switch def.Kind {
	case model.DefStr:
		preset, err := model.ParseStringPreset(names...)
		if err != nil {
			return err
		}
		def.Str.Preset = &preset
	case model.DefNum:
		if len(names) != 1 {
			return fmt.Errorf("%w: expected preset(Ordinal) or preset(Serial)", model.ErrUnknownPreset)
		}
		preset, err := model.ParseNumberPreset(names[0])
		if err != nil {
			return err
		}
		def.Num.Preset = &preset
	default:
		return unsupported(def, setting)
	}
	return nil
}

func singleName(setting annotation.Setting) (string, error) {
	arg, err := setting.Arg()
	if err != nil {
		return "", err
	}
	return annotation.Name(arg)
}

func unsupported(def *model.AttributeDefinition, setting annotation.Setting) error {
	return fmt.Errorf("%w: %s does not accept %s", model.ErrUnknownSetting, def.Kind, setting.Name)
}
