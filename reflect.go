// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package segsim

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Updater is the interface that custom components built using reflection must implement.
// See MakePart.
//
type Updater interface {
	Update(*Circuit)
}

var wireType = reflect.TypeOf(Wire{})

type fieldPins struct {
	index  int
	input  bool
	array  bool
	prefix string
	bits   uint
	pins   []Pin
}

// MakePart wraps an Updater into a custom component.
// Input/output pins are identified by field tags.
//
// The field tag must be `hw:"in"` or `hw:"out"` to identify input and output
// pins. By default, the pin name is the field name in lowercase and the pin is
// one bit wide. A specific pin name and width can be forced by adding them in
// the tag: `hw:"in,sel,3"`.
//
// Pin fields must be of type Wire. Fields of type [N]Wire declare N pins
// named after the field, suffixed with the pin index: a field V [8]Wire
// tagged `hw:"in,v,4"` declares the 4 bits pins v0 to v7.
//
// Each time the part is mounted, a copy of t is made. Untagged fields of t are
// therefore carried over to every instance and can be used as parameters.
//
func MakePart(t Updater) *PartSpec {
	v := reflect.ValueOf(t)
	typ := v.Type()
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if k := typ.Kind(); k != reflect.Struct {
		panic(errors.Errorf("unsupported type %q for %q", k, typ.Name()))
	}
	if _, ok := reflect.New(typ).Interface().(Updater); !ok {
		panic(errors.Errorf("*%s does not implement Updater", typ.Name()))
	}

	sp := &PartSpec{
		Name: typ.Name(),
	}
	fields := parseFields(typ)
	for _, f := range fields {
		if f.input {
			sp.Inputs = append(sp.Inputs, f.pins...)
		} else {
			sp.Outputs = append(sp.Outputs, f.pins...)
		}
	}

	var proto reflect.Value
	if v.Kind() == reflect.Ptr && !v.IsNil() {
		proto = v.Elem()
	} else if v.Kind() == reflect.Struct {
		proto = v
	}
	sp.Mount = mountPart(typ, proto, fields)
	return sp
}

func parseFields(typ reflect.Type) []fieldPins {
	var out []fieldPins
	n := typ.NumField()
	for i := 0; i < n; i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("hw")
		if !ok {
			continue
		}
		fp := fieldPins{index: i, prefix: strings.ToLower(f.Name), bits: 1}
		tv := strings.Split(tag, ",")
		switch tv[0] {
		case "in":
			fp.input = true
		case "out":
		default:
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		if len(tv) > 1 && tv[1] != "" {
			fp.prefix = tv[1]
		}
		if len(tv) > 2 {
			b, err := strconv.Atoi(tv[2])
			if err != nil || b < 1 || b > MaxBits {
				panic(errors.Errorf("invalid width in tag %q for field %q in %q", tag, f.Name, typ.Name()))
			}
			fp.bits = uint(b)
		}
		if f.PkgPath != "" {
			panic(errors.Errorf("pin field %q in %q must be exported", f.Name, typ.Name()))
		}

		ft := f.Type
		switch {
		case ft == wireType:
			fp.pins = []Pin{{fp.prefix, fp.bits}}
		case ft.Kind() == reflect.Array && ft.Elem() == wireType:
			fp.array = true
			for j := 0; j < ft.Len(); j++ {
				fp.pins = append(fp.pins, Pin{fp.prefix + strconv.Itoa(j), fp.bits})
			}
		default:
			panic(errors.Errorf("unsupported type %q for field %q in %q", ft, f.Name, typ.Name()))
		}
		out = append(out, fp)
	}
	return out
}

func mountPart(typ reflect.Type, proto reflect.Value, fields []fieldPins) MountFn {
	return func(s *Socket) []Component {
		v := reflect.New(typ)
		e := v.Elem()
		if proto.IsValid() {
			e.Set(proto)
		}
		for _, f := range fields {
			fv := e.Field(f.index)
			if f.array {
				for i, p := range f.pins {
					fv.Index(i).Set(reflect.ValueOf(s.Wire(p.Name)))
				}
			} else {
				fv.Set(reflect.ValueOf(s.Wire(f.pins[0].Name)))
			}
		}

		comp := v.Interface().(Updater)
		return []Component{comp.Update}
	}
}
