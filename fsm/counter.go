package fsm

import (
	"fmt"
	"strings"
)

// Counter is a sample model: a bits wide counter starting at zero and incremented modulo 2^bits at every step.
// Variable x0 is the least significant bit.
func Counter(bits int) *Model {
	m := &Model{
		Next:    map[string]string{},
		Defines: map[string]string{},
	}
	carry := []string{}
	zero := []string{}
	for i := 0; i < bits; i++ {
		v := fmt.Sprintf("x%d", i)
		m.Vars = append(m.Vars, v)
		zero = append(zero, "!"+v)
		if i == 0 {
			m.Next[v] = "!" + v
		} else {
			m.Next[v] = v + " ^ (" + strings.Join(carry, " & ") + ")"
		}
		carry = append(carry, v)
	}
	m.Init = strings.Join(zero, " & ")
	m.Defines["max"] = strings.Join(carry, " & ")
	return m
}
