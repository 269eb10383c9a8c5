package repositories

import "gorm.io/gorm"

// ErrRecordNotFound 是仓库层统一的未找到错误
var ErrRecordNotFound = gorm.ErrRecordNotFound
