// Package stats 按分组层级聚合虚拟用户的执行耗时。
package stats
