package seqid

import "gorm.io/gorm"

// 应用层自增序号：插入前读当前表内最大 id，+1；空表从 1 开始。
// 读和写之间没有锁，两个并发创建可能读到同一个最大值——id 列的唯一约束
// 会让后写的一方收到 duplicate key，而不是悄悄写出重复序号。

// Next 取下一个序号。用 Table 直查绕过软删过滤，已封禁用户的序号不会被复用。
func Next(tx *gorm.DB, table string) (int64, error) {
	var last int64
	res := tx.Table(table).Select("id").Order("id DESC").Limit(1).Scan(&last)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 1, nil
	}
	return last + 1, nil
}
