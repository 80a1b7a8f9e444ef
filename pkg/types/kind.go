package types

// ============================================================================
//                              ConnectionKind - 连接类别
// ============================================================================

// ConnectionKind 连接类别
//
// 控制连接（Control）是会话的第一条连接，用于交换 Settings；
// 数据连接（Data）在控制连接建立后按对端请求打开，由不透明 ID 标识。
// 零值为控制连接。
type ConnectionKind struct {
	id   string
	data bool
}

// Control 返回控制连接类别
func Control() ConnectionKind {
	return ConnectionKind{}
}

// Data 返回带 ID 的数据连接类别
func Data(id string) ConnectionKind {
	return ConnectionKind{id: id, data: true}
}

// IsControl 是否为控制连接
func (k ConnectionKind) IsControl() bool {
	return !k.data
}

// IsData 是否为数据连接
func (k ConnectionKind) IsData() bool {
	return k.data
}

// ID 返回数据连接 ID，控制连接返回空串
func (k ConnectionKind) ID() string {
	return k.id
}

// String 返回类别的字符串表示
func (k ConnectionKind) String() string {
	if k.data {
		return "data(" + k.id + ")"
	}
	return "control"
}
