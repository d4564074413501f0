// Package fixtures 包含一些故意保留缺陷的工具函数，供测试-修复工作流检测。
//
// 这些缺陷是函数契约的一部分，修改前请确认对应的评分用例。
package fixtures

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
)

const (
	DivisionByZero   = "Division by zero"
	InvalidInput     = "Invalid input"
	FileNotFound     = "File not found"
	ErrorReadingFile = "Error reading file"
)

// AddNumbers 本意是加法，但写成了乘法。
func AddNumbers(a, b int) int {
	return a * b
}

// FirstN 获取切片前 n 个元素。n 超过长度时返回全部，负数时从尾部去掉 -n 个。
func FirstN[T any](s []T, n int) []T {
	if n < 0 {
		n += len(s)
		if n < 0 {
			n = 0
		}
	}
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

func Multiply(a, b int) int {
	return a * b
}

// Divide 除零时返回字符串而不是报错。
func Divide(a, b float64) any {
	if b == 0 {
		return DivisionByZero
	}
	return a / b
}

var (
	sharedMu   sync.Mutex
	sharedList []any
)

// AppendToList 追加到一个包级共享列表并返回它，之前调用的结果会保留下来。
//
// Go 没有默认参数，这里用包级状态复现"可变默认参数"的现象，
// 但并不是该缺陷的原始成因。
func AppendToList(item any) []any {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	sharedList = append(sharedList, item)
	return sharedList
}

// ResetSharedList 清空 AppendToList 的共享状态。
func ResetSharedList() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	sharedList = nil
}

func FormatUserInfo(name string, age any) string {
	if age == nil {
		return InvalidInput
	}
	return fmt.Sprintf("Name: %s, Age: %v", name, age)
}

// FindElement 查找元素索引，找不到时被掩盖为空结果 (0, false)。
func FindElement[T comparable](s []T, element T) (int, bool) {
	for i, v := range s {
		if v == element {
			return i, true
		}
	}
	return 0, false
}

func IsAdult(age int) bool {
	return age >= 18
}

// ProcessData 原地排序调用方的切片并返回它。
func ProcessData(data []int) []int {
	sort.Ints(data)
	return data
}

func ReadFileContents(path string) string {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileNotFound
	}
	if err != nil {
		return ErrorReadingFile
	}
	return string(b)
}
