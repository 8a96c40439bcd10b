package env

import (
	"os"
	"strings"
)

type Value string

func Get(key string) Value {
	return Value(strings.TrimSpace(os.Getenv(strings.ToUpper(key))))
}

func (this Value) IsEmpty() bool {
	return this == ""
}

func (this Value) Is(val string) bool {
	return strings.EqualFold(string(this), val)
}

func (this Value) String() string {
	return string(this)
}
