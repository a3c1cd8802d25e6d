// Package nskeyed decodes NSKeyedArchiver binary property lists into plain
// nested values.
//
// An archive is a flat object table ("$objects") whose entries point at each
// other through UID references, plus a "$top" dictionary naming the root.
// Decoding follows references from the root, expands the collection classes
// the e-reader's serializer emits (NSArray, NSMutableArray, NSDictionary,
// NSMutableDictionary) and strips "$"-prefixed bookkeeping keys from every
// other keyed object. Each table entry is decoded at most once per archive.
package nskeyed

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"howett.net/plist"
)

var (
	// ErrMalformed reports an archive without the "$objects"/"$top" envelope.
	ErrMalformed = errors.New("nskeyed: malformed archive")
	// ErrBadReference reports a UID pointing outside the object table.
	ErrBadReference = errors.New("nskeyed: reference out of range")
	// ErrBadKey reports a dictionary key that did not decode to a scalar.
	ErrBadKey = errors.New("nskeyed: dictionary key is not a scalar")
)

const nullMarker = "$null"

const (
	keyClass     = "$class"
	keyClassName = "$classname"
	keyNSObjects = "NS.objects"
	keyNSKeys    = "NS.keys"
)

// Resolve decodes blob and reports false for any malformed input. It never
// panics; corrupt metadata must not abort a batch.
func Resolve(blob []byte) (v Value, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v, ok = Value{}, false
		}
	}()
	v, err := Decode(blob)
	if err != nil {
		return Value{}, false
	}
	return v, true
}

// Decode is the error-reporting form of Resolve.
func Decode(blob []byte) (Value, error) {
	if len(blob) == 0 {
		return Value{}, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	var envelope map[string]any
	if _, err := plist.Unmarshal(blob, &envelope); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	objects, ok := envelope["$objects"].([]any)
	if !ok {
		return Value{}, fmt.Errorf("%w: missing $objects", ErrMalformed)
	}
	top, ok := envelope["$top"].(map[string]any)
	if !ok {
		return Value{}, fmt.Errorf("%w: missing $top", ErrMalformed)
	}
	root, ok := top["root"]
	if !ok {
		return Value{}, fmt.Errorf("%w: missing $top.root", ErrMalformed)
	}
	return newResolver(objects).decode(root)
}

// ClassMap indexes the object table by position for every entry declaring a
// $classname.
func ClassMap(objects []any) map[int]string {
	classes := make(map[int]string)
	for i, obj := range objects {
		dict, ok := obj.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := dict[keyClassName].(string); ok {
			classes[i] = name
		}
	}
	return classes
}

type resolver struct {
	objects []any
	classes map[int]string
	memo    map[int]Value
	// active holds indexes whose decode is in progress; meeting one again
	// means the table has a cycle.
	active map[int]bool
	// onDecode, when set, is called each time an index is decoded from the
	// table rather than served from memo.
	onDecode func(idx int)
}

func newResolver(objects []any) *resolver {
	return &resolver{
		objects: objects,
		classes: ClassMap(objects),
		memo:    make(map[int]Value),
		active:  make(map[int]bool),
	}
}

func (r *resolver) decode(entry any) (Value, error) {
	switch e := entry.(type) {
	case plist.UID:
		if uint64(e) >= uint64(len(r.objects)) {
			return Value{}, fmt.Errorf("%w: %d of %d", ErrBadReference, uint64(e), len(r.objects))
		}
		return r.deref(int(e))
	case []any:
		items := make([]Value, 0, len(e))
		for _, item := range e {
			v, err := r.decode(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return List(items...), nil
	case map[string]any:
		return r.decodeDict(e)
	case nil:
		return Null(), nil
	default:
		return Scalar(e), nil
	}
}

func (r *resolver) deref(idx int) (Value, error) {
	if v, ok := r.memo[idx]; ok {
		return v, nil
	}
	if r.active[idx] {
		// Back edge of a cycle.
		return Null(), nil
	}
	raw := r.objects[idx]
	if s, ok := raw.(string); ok && s == nullMarker {
		r.memo[idx] = Null()
		return Null(), nil
	}

	r.active[idx] = true
	if r.onDecode != nil {
		r.onDecode(idx)
	}
	v, err := r.decode(raw)
	delete(r.active, idx)
	if err != nil {
		return Value{}, err
	}
	r.memo[idx] = v
	return v, nil
}

func (r *resolver) className(dict map[string]any) string {
	uid, ok := dict[keyClass].(plist.UID)
	if !ok || uint64(uid) >= uint64(len(r.objects)) {
		return ""
	}
	return r.classes[int(uid)]
}

func (r *resolver) decodeDict(dict map[string]any) (Value, error) {
	switch r.className(dict) {
	case "NSArray", "NSMutableArray":
		if objs, ok := dict[keyNSObjects]; ok {
			return r.decode(objs)
		}
	case "NSDictionary", "NSMutableDictionary":
		keys, hasKeys := dict[keyNSKeys]
		objs, hasObjs := dict[keyNSObjects]
		if hasKeys && hasObjs {
			return r.zip(keys, objs)
		}
	}

	names := make([]string, 0, len(dict))
	for k := range dict {
		if strings.HasPrefix(k, "$") {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)

	out := make(map[string]Value, len(names))
	for _, k := range names {
		v, err := r.decode(dict[k])
		if err != nil {
			return Value{}, err
		}
		out[k] = v
	}
	return Map(out), nil
}

func (r *resolver) zip(rawKeys, rawObjs any) (Value, error) {
	keys, err := r.decode(rawKeys)
	if err != nil {
		return Value{}, err
	}
	objs, err := r.decode(rawObjs)
	if err != nil {
		return Value{}, err
	}
	keyList, ok := keys.List()
	if !ok {
		return Value{}, fmt.Errorf("%w: NS.keys is a %s", ErrMalformed, keys.Kind())
	}
	objList, ok := objs.List()
	if !ok {
		return Value{}, fmt.Errorf("%w: NS.objects is a %s", ErrMalformed, objs.Kind())
	}

	n := min(len(keyList), len(objList))
	out := make(map[string]Value, n)
	for i := 0; i < n; i++ {
		k, ok := keyList[i].Text()
		if !ok || keyList[i].Kind() != KindScalar {
			return Value{}, fmt.Errorf("%w: %s at %d", ErrBadKey, keyList[i].Kind(), i)
		}
		out[k] = objList[i]
	}
	return Map(out), nil
}
