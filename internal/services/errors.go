package services

import "errors"

// ErrCompanyRequired 表示缺少企业标识
var ErrCompanyRequired = errors.New("缺少企业标识")
