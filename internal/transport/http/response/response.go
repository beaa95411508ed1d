package response

// Body 全站统一信封：{success, message, ...payload}。
// payload 直接平铺在信封里（product / user / data 等键名因接口而异，
// 历史客户端依赖这些键名，不能归一成 data）。
type Body map[string]any

func OK(message string, payload ...Body) Body {
	return build(true, message, payload...)
}

func Fail(message string, payload ...Body) Body {
	return build(false, message, payload...)
}

func build(success bool, message string, payload ...Body) Body {
	b := Body{"success": success, "message": message}
	for _, p := range payload {
		for k, v := range p {
			b[k] = v
		}
	}
	return b
}
