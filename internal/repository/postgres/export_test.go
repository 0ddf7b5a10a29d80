package postgres

var SQLTxOptions = sqlTxOptions
