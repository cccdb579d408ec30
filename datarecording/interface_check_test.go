package datarecording

var _ DataRecorder = (*ClickHouseRecorder)(nil)
var _ DataRecorder = (*SQLiteWriter)(nil)
