package fixed

import (
	"fmt"
	"reflect"
	"unsafe"
)

func assertNoPointers[T any]() error {
	var zero T
	return typeNoPointers(reflect.TypeOf(zero))
}

func typeNoPointers(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return nil
	case reflect.Array:
		return typeNoPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := typeNoPointers(t.Field(i).Type); err != nil {
				return fmt.Errorf("field %s: %w", t.Field(i).Name, err)
			}
		}
		return nil
	case reflect.String, reflect.Slice, reflect.Map, reflect.Pointer,
		reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return fmt.Errorf("type %s contains pointer-like data", t.String())
	default:
		return fmt.Errorf("unsupported kind %s (%s)", t.Kind(), t.String())
	}
}

func bytesViewOf[T any](p *T) []byte {
	n := int(unsafe.Sizeof(*p))
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

// SizeOf 返回 T 的字节大小。
func SizeOf[T any]() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

// Place 校验 T 无指针后，把 *v 的字节镜像拷入 dst（帧序列的起始处）。
func Place[T any](dst []byte, v *T) error {
	if err := assertNoPointers[T](); err != nil {
		return err
	}
	b := bytesViewOf(v)
	if len(b) > len(dst) {
		return fmt.Errorf("size mismatch: need=%d have=%d", len(b), len(dst))
	}
	copy(dst, b)
	return nil
}

// View 从 src 起始处读出一个 T。
func View[T any](src []byte) (*T, error) {
	if err := assertNoPointers[T](); err != nil {
		return nil, err
	}
	out := new(T)
	want := int(unsafe.Sizeof(*out))
	if len(src) < want {
		return nil, fmt.Errorf("size mismatch: need=%d have=%d", want, len(src))
	}
	copy(bytesViewOf(out), src[:want])
	return out, nil
}
