package bitable

import "log"

// Имена колонок целевой таблицы. Таблицы ведутся вручную, поэтому для пары
// полей существуют исторические варианты написания — см. FieldAliases.
const (
	FieldAccount     = "账号"
	FieldPublishTime = "发布时间"
	FieldReadCount   = "浏览次数"
	FieldRecommend   = "推荐次数"
	FieldComment     = "评论次数"
	FieldShare       = "分享次数"
	FieldForwardAgg  = "转发聊天和朋友圈"
	FieldLike        = "喜欢次数"
	FieldFullPlay    = "完播率"
	FieldAvgPlay     = "平均播放时长"
	FieldDescription = "内容描述"
	FieldVideoID     = "视频编号"
)

// FieldAliases — упорядоченная цепочка имён одного логического поля.
// Первое имя основное, остальные пробуются только после отказа
// FieldNameNotFound, называющего предыдущее имя.
type FieldAliases []string

// Цепочки запасных имён, встречающиеся в реальных таблицах.
var (
	AccountField = FieldAliases{FieldAccount, "帐号"}
	VideoIDField = FieldAliases{FieldVideoID, "文案编号"}
)

// Resolve выполняет op с основным именем поля; при отказе из-за неизвестного
// имени, называющем именно это имя, повторяет со следующим из цепочки ровно
// один раз на имя. Любая другая ошибка, в том числе отказ по чужому полю,
// как и отказ на последнем имени, возвращается без изменений.
func (fa FieldAliases) Resolve(op func(field string) error) error {
	var lastErr error
	for i, name := range fa {
		err := op(name)
		if err == nil {
			return nil
		}
		if !isFieldNameErrorFor(err, name) {
			return err
		}
		lastErr = err
		if i < len(fa)-1 {
			log.Printf("[BITABLE WARN] Поле %q не найдено, пробуем %q", name, fa[i+1])
		}
	}
	return lastErr
}
