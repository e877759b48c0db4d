package fs

// ArenaPath 返回 base 对应的 arena 文件路径。
func ArenaPath(base string) string {
	return base + ".arena"
}

// RegPath 返回 base 对应的 pool 描述符日志路径。
func RegPath(base string) string {
	return base + ".reg"
}
